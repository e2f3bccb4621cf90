// Package deployconfig reads deployment descriptors and reports which services are enabled.
//
// A descriptor maps service names to configuration records. Filter computes the
// enabled subset in document order and renders it as service names, a
// service-to-environment-file mapping, or the verbatim enabled records.
package deployconfig
