package app

import (
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/action"
	"github.com/specialistvlad/fieldgridgo/modules/contraction"
	"github.com/specialistvlad/fieldgridgo/modules/fermion"
	"github.com/specialistvlad/fieldgridgo/modules/gauge"
	"github.com/specialistvlad/fieldgridgo/modules/sink"
	"github.com/specialistvlad/fieldgridgo/modules/solver"
	"github.com/specialistvlad/fieldgridgo/modules/source"
)

// coreModules is the definitive list of all modules that are compiled into
// the fieldgridgo binary.
var coreModules = []registry.Module{
	&gauge.Module{},
	&action.Module{},
	&solver.Module{},
	&source.Module{},
	&sink.Module{},
	&fermion.Module{},
	&contraction.Module{},
}
