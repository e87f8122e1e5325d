package http

import xutil "RegionPulse/pkg/util"

// ParseIntDefault parses an optional query parameter, falling back to def
// when empty or invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }
