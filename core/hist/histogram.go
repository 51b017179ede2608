// Package hist provides the topic-count rows used by models and
// documents.  A row is a fixed-length slice of int64 counts, one per
// topic.  Rows of a Model share one backing buffer, so a Dense is
// usually a view rather than an owner.
package hist
