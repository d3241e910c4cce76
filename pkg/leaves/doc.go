// Package leaves provides ready-made leaf behaviors for common value kinds.
//
// Every behavior has a "set" action taking {"value": v} and a "reset" action restoring the
// initial value. Kind-specific actions are listed on each factory. Payloads are read through
// the json tags of the payload struct, so both maps and tagged structs are accepted.
package leaves
