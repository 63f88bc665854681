package strata

// SoftwareVersion is the version of this client library. Logged when
// opening tables so mixed-client deployments can be diagnosed from one
// side.
const SoftwareVersion = "1.2.0"
