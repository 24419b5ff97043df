// package models defines the data model for the playlist tracker: the
// snapshot value types observed from the remote service and the persisted
// models backing the tracked-user registry and run history.
package models
