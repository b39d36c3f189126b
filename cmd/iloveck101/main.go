// Package main provides the entry point for the iloveck101 CLI.
//
// iloveck101 downloads the pictures posted in ck101.com forum threads.
// Give it a thread URL to save one thread, or a listing URL to save every
// thread linked from that page. Each thread gets its own folder named
// "<thread id> - <title>" under ~/Pictures/iloveck101.
//
// Usage:
//
//	iloveck101 http://ck101.com/thread-2818521-1-1.html
//	iloveck101 http://ck101.com/forum-1345-1.html
//
// See --help for all available options.
package main

func main() {
	Execute()
}
