// Package testsupport holds fixtures shared by package tests: isolated
// configurations and SubRip files.
package testsupport
