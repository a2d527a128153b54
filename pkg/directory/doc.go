// Package directory implements the demo person-directory read service.
//
// # Overview
//
// The directory serves rows from a legacy "people" table whose column names
// (firstName, lastName, dateOfBirth) predate the Go service. Rather than
// tagging the Person struct with every legacy name, the package declares the
// overrides once at startup via a mapping.Mapper and installs them into the
// scan registry; id and email bind through the scanner's default matching.
//
// RegisterMappers must run during single-threaded startup, before the HTTP
// server accepts traffic. Any declaration error aborts startup.
package directory
