// Package loader provides remote component loaders.
//
// A loader maps a component tag to single-file component source. The
// component manager calls it once per unknown hyphenated tag and defines
// whatever it returns. HTTP fetches from a web server, S3 from a bucket
// and Dir from a local tree; Chain and Resolve compose them.
package loader
