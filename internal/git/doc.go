// Package git reads commit history to date documents that carry no date of
// their own.
//
// History opens the repository enclosing a content directory and answers,
// per file, when it was last changed by a commit. Uncommitted files and
// directories outside a repository simply have no history.
package git
