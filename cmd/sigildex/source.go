package main

import (
	"github.com/athanor/sigildex"
)

// resolveSource accepts either a source ID or a slug. IDs are cheap to
// try first; slugs require scanning the catalog.
func resolveSource(deps *Dependencies, key string) (*sigildex.Source, error) {
	src, err := deps.Sources.FindSourceByID(deps.Ctx, key)
	if err == nil {
		return src, nil
	}
	if sigildex.ErrorCode(err) != sigildex.ENOTFOUND {
		return nil, err
	}

	sources, err := deps.Sources.FindSources(deps.Ctx, sigildex.SourceFilter{})
	if err != nil {
		return nil, err
	}
	for _, s := range sources {
		if s.Slug() == key {
			return s, nil
		}
	}
	return nil, sigildex.Errorf(sigildex.ENOTFOUND, "source %q not found", key)
}
