// Package services holds the application logic behind the driving ports:
// prompt assembly, retrieval, ingestion fan-out, text analysis and dataset
// questions. Every provider call goes through a driven port, so the tests
// run against fakes.
package services
