package app

import (
	"github.com/specialistvlad/proteindiff/internal/sampler"
	"github.com/specialistvlad/proteindiff/internal/sampler/linear"
	"github.com/specialistvlad/proteindiff/internal/sampler/remote"
)

// coreModules is the definitive list of all samplers that are compiled into
// the binary.
var coreModules = []sampler.Module{
	&linear.Module{},
	&remote.Module{},
}
