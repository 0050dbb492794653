// Package configmanager loads ChainSail stack configuration from
// chainsail.yaml files, environment variables, and CLI flags.
//
// Configuration priority: defaults < config file < environment variables < flags.
package configmanager
