// Command writeflow runs the batch-write service: an HTTP intake for write
// tasks, a pool of batch writers, and a Prometheus metrics endpoint.
package main
