// Package opensearch connects to an OpenSearch cluster with
// opensearch-go/v2. The request log can index records there so that
// full-text search over captured traffic is served by the cluster.
package opensearch
