// Package file provides file-backed stores for datasets and knowledge-base
// documents.
//
// Datasets are CSV files whose first record is the header. Documents are
// YAML or JSON files holding either a list of documents or an object with a
// "documents" key. Text, markdown and HTML files become a single document
// whose title comes from the first heading or <title>. The format is chosen
// by file extension.
package file
