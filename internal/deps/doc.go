// Package deps locates the external binaries a crawl shells out to.
package deps
