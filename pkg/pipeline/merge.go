package pipeline

import (
	"reflect"
	"strings"

	"gigscout/pkg/models"

	"dario.cat/mergo"
)

// Merge folds one snapshot into the accumulating gig record. Scalars already
// holding a non-blank value are never replaced by a blank one from a later
// step; non-blank values from later steps win; lists union by value equality.
func Merge(g *models.Gig, snap models.Snapshot) error {
	src := snap.Sections
	trimStrings(reflect.ValueOf(&src).Elem())

	err := mergo.Merge(&g.Sections, src, mergo.WithOverride, mergo.WithAppendSlice)
	if err != nil {
		return err
	}
	dedupeSections(&g.Sections)
	return nil
}

// trimStrings trims every string reachable from v so that whitespace-only
// values count as blank for the merge.
func trimStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			trimStrings(v.Field(i))
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimStrings(v.Index(i))
		}
	case reflect.Pointer:
		if !v.IsNil() {
			trimStrings(v.Elem())
		}
	}
}

// dedupe removes later duplicates by value equality, keeping first-seen
// order. Lists here are tiny, quadratic is fine.
func dedupe[T any](in []T) []T {
	var out []T
	for _, v := range in {
		dup := false
		for _, u := range out {
			if reflect.DeepEqual(u, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func dedupeSections(s *models.Sections) {
	s.Overview.Tags = dedupe(s.Overview.Tags)
	s.Overview.Images = dedupe(s.Overview.Images)
	s.Description.FAQ = dedupe(s.Description.FAQ)
	s.Pricing.Packages = dedupe(s.Pricing.Packages)
	s.Requirements.List = dedupe(s.Requirements.List)
	s.Requirements.WhatToProvide = dedupe(s.Requirements.WhatToProvide)
	s.Requirements.WhatYouGet = dedupe(s.Requirements.WhatYouGet)
	s.Gallery.Images = dedupe(s.Gallery.Images)
	s.Gallery.Videos = dedupe(s.Gallery.Videos)
}
