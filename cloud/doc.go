// Package cloud implements the Prefect Cloud API surface on top of the
// resilient transport in the http package: deployments, flows, work pools and
// block documents, with typed schemas and client-side payload validation.
//
// All calls go through the retrying transport; callers see either a decoded
// result, an ObjectNotFound / ObjectAlreadyExists translation of the API's
// 404/409 answers, or an enriched HTTP error carrying the API error body.
package cloud
