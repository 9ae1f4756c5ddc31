package app

import (
	"github.com/vk/geogridgo/internal/registry"
	"github.com/vk/geogridgo/modules/env_vars"
	"github.com/vk/geogridgo/modules/geometry"
	"github.com/vk/geogridgo/modules/http_fetch"
	"github.com/vk/geogridgo/modules/livefeed"
	"github.com/vk/geogridgo/modules/print"
)

// coreModules is the definitive list of all operator modules that are
// compiled into the geogridgo binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&geometry.Module{},
	&http_fetch.Module{},
	&livefeed.Module{},
	&print.Module{},
}
