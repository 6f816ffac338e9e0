// Package render turns discovered documents into HTML pages.
//
// A page passes through up to three stages: the data engine expands
// templated front-matter values, the markdown or html engine expands the
// body, and a layout from the theme (or the project's layouts directory)
// wraps the converted content.
package render
