// Package render is the rendering collaborator used to build reports.
//
// It provides two capabilities:
//   - Renderer fills a named template with a map of variables and returns
//     the text. TemplateRenderer implements it with html/template using the
//     templates embedded in this package, optionally overridden by files
//     from a user template directory.
//   - MarkdownTabulator implements model.Tabulator. It lays the records out
//     as a GitHub Flavored Markdown table and converts that table to HTML.
//
// Templates receive the following variables:
//
//	report.html           title, sections, model_results_list
//	summary_section.html  model_results_list, number_misidentified
//	table_section.html    model, dataset, table
package render
