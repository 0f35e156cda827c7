// Package extract turns fetched HTML into the plain text sent to the model.
//
// The default [TagExtractor] collects the trimmed text of paragraph, heading,
// div and span elements. Parsing is permissive, so malformed markup never
// fails, and a page without matching text yields "". [MarkdownExtractor] and
// [ReadabilityExtractor] are alternatives selected with the extract.mode
// setting.
package extract
