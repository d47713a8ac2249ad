// Package instruction implements the navigation URL grammar and the
// instruction tree it describes.
//
// Grammar:
//
//	url       = [ "/" ] siblings [ "?" query ] [ "#" fragment ]
//	siblings  = scoped { "+" scoped }
//	scoped    = "(" siblings ")" | segment [ "/" scoped ]
//	segment   = component [ "@" viewport ]
//
// Segments separated by "/" nest: "c-1/c-12/1" is c-1 containing c-12
// containing 1. "+" places instructions side by side in the same parent
// ("c1@vp1+c2@vp2"), and parentheses group siblings below a parent
// ("shell/(list+detail)"). The query string is parsed independently of the
// path and travels with the tree.
//
// Parse and Tree.String are inverse operations for every tree produced by
// Parse, which is what keeps committed URLs replayable.
package instruction
