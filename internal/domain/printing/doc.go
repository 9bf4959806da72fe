// Package printing models invoice print jobs and the label stock they are
// rendered on. The layout engine itself lives in the invoice subpackage.
package printing
