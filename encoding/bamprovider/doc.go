// Package bamprovider provides utilities for scanning a BAM or SAM file as a
// single ordered stream of records.
//
// The Provider is an interface for opening the file and reading its header.
// Each call to NewIterator reopens the file and yields records in file order.
package bamprovider
