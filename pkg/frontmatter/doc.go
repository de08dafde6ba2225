// Package frontmatter parses and formats YAML frontmatter in the markdown
// files that make up the ccdir content tree.
//
// Frontmatter is delimited by lines containing only "---" at the start and
// end. The content between delimiters is unmarshaled as YAML into the type
// parameter T; the remainder is returned as the body.
//
//	var meta resource.ClaudeMdConfig
//	body, err := frontmatter.MustParse(f, &meta)
//	if err != nil {
//		return err
//	}
//	meta.Content = frontmatter.NormalizeBody(body)
//
// [Format] is the inverse: a record written with Format and read back with
// [MustParse] and [NormalizeBody] yields the same metadata and body.
//
// Both LF and CRLF line endings are accepted.
package frontmatter
