// Package main hosts the ytnodup CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the console logger,
// and hands crawls to the workflow manager. Read-only commands render run
// history and duplicate reports from the history database without taking
// the run lock.
package main
