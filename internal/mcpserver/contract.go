package mcpserver

// FormatContract describes the mf2 JSON documents the publish tools accept
// and how each shape is classified and rendered.
const FormatContract = `# Raido mf2 Document Contract

Posts are submitted as microformats-2 JSON. Every property value is an
ARRAY, even when it holds a single item.

## Structure

` + "```" + `json
{
  "type": ["h-entry"],
  "properties": {
    "content": ["Plain text"],
    "category": ["indieweb", "go"],
    "mp-slug": ["optional-file-name"]
  }
}
` + "```" + `

## Post types

The first matching rule wins:

| Rule | Property | Post type |
|---|---|---|
| 1 | ` + "`rsvp`" + ` (non-empty string) | rsvp |
| 2 | ` + "`in-reply-to`" + ` | reply |
| 3 | ` + "`like-of`" + ` | like |
| 4 | ` + "`repost-of`" + ` | repost |
| 5 | ` + "`bookmark-of`" + ` | bookmark |
| 6 | ` + "`photo`" + ` | photo |
| 7 | ` + "`video`" + ` | video |
| 8 | ` + "`name`" + ` that is not the start of the content text | article |
| - | anything else | note |

Response URLs (` + "`in-reply-to`, `like-of`, `repost-of`, `bookmark-of`" + `) must be
absolute URLs with a scheme and a host to appear in the rendered body.

## Content

- ` + "`\"content\": [\"text\"]`" + ` is escaped and wrapped in ` + "`<p class=\"p-content\">`" + `.
  Blank lines split paragraphs.
- ` + "`\"content\": [{\"html\": \"<p>markup</p>\"}]`" + ` is inserted verbatim inside
  ` + "`<div class=\"e-content\">`" + `.
- Any other content shape (numbers, nested microformats, objects without
  ` + "`html`" + `) is rejected.

## Other properties

- ` + "`rsvp`" + `: one of yes, no, maybe, interested.
- ` + "`photo`" + `: URLs, or objects ` + "`{\"value\": url, \"alt\": text}`" + `.
- ` + "`syndication`" + `: URLs of copies elsewhere.
- ` + "`published`" + `: RFC 3339 timestamp; defaults to now.
- ` + "`post-status`" + `: ` + "`draft`" + ` keeps the post unpublished.
- ` + "`mp-slug`" + `: file name stem; otherwise derived from name or content.

Update, delete and undelete actions are not supported.

## Example

` + "```" + `json
{
  "type": ["h-entry"],
  "properties": {
    "in-reply-to": ["https://example.com/2026/10/post"],
    "content": ["Agreed, and here is why."],
    "category": ["discussion"]
  }
}
` + "```" + `
`
