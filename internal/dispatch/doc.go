// Package dispatch resolves virtual, interface, default interface and static
// virtual method calls against an immutable typesys hierarchy.
//
// Every entry point is a pure function of its inputs: nothing is cached and
// no state outlives a call, so independent queries may run concurrently over
// a frozen universe. Absence of an implementation is reported as a nil
// method; Diamond and Reabstraction are ordinary DefaultResolution values;
// only a self-inconsistent hierarchy produces an error (ErrMalformedType).
//
// Name/signature matching walks declared virtual methods either in reverse
// declaration order (the last match wins) or forward (the first exact match
// wins). Forward order is used only when matching an interface method on the
// type that declares or first introduces the interface. The asymmetry is a
// compatibility contract with existing runtimes and must not be unified.
package dispatch
