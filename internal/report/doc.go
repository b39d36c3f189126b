// Package report renders crawl run reports.
//
// Three formats are available:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: Markdown with a Mermaid pie chart of image outcomes
//
// All writers implement Writer and consume a *model.RunReport, either
// fresh from a crawl or loaded back from the history database.
package report
