package rest

import "strings"

// SplitLink derives the resource type and the signed resource link from a
// request URL path. Feed addresses (odd number of segments, e.g.
// /dbs/tour/colls) sign the parent link; item addresses sign themselves.
func SplitLink(urlPath string) (resourceType, resourceLink string) {
	trimmed := strings.Trim(urlPath, "/")
	if trimmed == "" {
		return "", ""
	}
	segs := strings.Split(trimmed, "/")
	if len(segs)%2 == 1 {
		return segs[len(segs)-1], strings.Join(segs[:len(segs)-1], "/")
	}
	return segs[len(segs)-2], trimmed
}
