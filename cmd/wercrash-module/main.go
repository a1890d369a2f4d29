// Command wercrash-module is the Windows Error Reporting runtime exception
// helper. Build it with -buildmode=c-shared and register the resulting DLL
// with `wercrash register`.
package main

func main() {}
