// Package pages defines the page text sources fed to the extraction pipeline.
//
// A [Provider] yields the text of a document split into 1-based [Page]s.
// Implementations live in the subpackages: textpages for plain text with
// form-feed page breaks, htmlpages for HTML files and URLs, pdfpages for PDF
// files. [Clean] is applied to every page so prompts see stable text.
package pages
