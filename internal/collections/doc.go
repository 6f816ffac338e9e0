// Package collections builds named, ordered views over discovered documents.
//
// A collection is the set of documents whose project-relative path matches at
// least one of its globs, sorted ascending by the `order` front matter value.
// Documents without `order` sort as 0. The sort is stable, so documents with
// equal keys keep their discovery order and every build is deterministic.
package collections
