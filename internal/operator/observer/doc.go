// Package observer refreshes the observed state of a FlinkDeployment before
// it is reconciled.
//
// Observation mutates only the status of the deployment copy it is given.
// A false result means the live cluster could not be read and the cycle must
// not reconcile.
package observer
