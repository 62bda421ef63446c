// Package layout derives where a materialized item lives in the library.
//
// The directory chain mirrors the first placement of the item: one directory
// per ancestor container from the root down, then the item's own title. Titles
// that contain a numeric date are rewritten to start with an ISO date so the
// library sorts chronologically. Every segment is sanitized with textutil.
package layout
