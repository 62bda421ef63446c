// Package organizer moves finished downloads out of staging into their
// derived library location.
//
// The target path comes from layout.Deriver, so the directory chain mirrors
// the item's first placement in the crawl. Moves rename within a filesystem
// and fall back to a verified copy across devices. Existing files are left in
// place unless overwriting is enabled. Failures are wrapped with the services
// markers so the workflow can count them per item and keep going.
package organizer
