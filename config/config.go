// Package config loads the abstract process configuration spec §6
// describes (threads, this_process, processes, addresses, noisy),
// in the teacher's jsoniter-backed config style.
package config

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ProcessConfig is the worker process's view of the whole cluster (spec
// §6 "Process configuration").
type ProcessConfig struct {
	Threads     int      `json:"threads"`
	ThisProcess int      `json:"this_process"`
	Processes   int      `json:"processes"`
	Addresses   []string `json:"addresses"`
	Noisy       bool     `json:"noisy"`
	// Compression turns on lz4 payload compression for every zero-copy
	// channel this process allocates (spec §4.2's "Extra.Compression"
	// knob), off by default since most clusters run on a LAN where the
	// CPU cost outweighs the bandwidth saved.
	Compression bool `json:"compression"`
}

// Address returns the host:port this process's peer i listens on,
// defaulting to localhost:2101+i when Addresses omits or blanks it
// (spec §6: "if omitted and processes > 1, default to localhost:2101+i").
func (c ProcessConfig) Address(i int) string {
	if i < len(c.Addresses) && c.Addresses[i] != "" {
		return c.Addresses[i]
	}
	return fmt.Sprintf("localhost:%d", 2101+i)
}

// Validate checks the shape invariants allocator.Build relies on.
func (c ProcessConfig) Validate() error {
	if c.Threads <= 0 {
		return errors.Errorf("config: threads must be positive, got %d", c.Threads)
	}
	if c.Processes <= 0 {
		return errors.Errorf("config: processes must be positive, got %d", c.Processes)
	}
	if c.ThisProcess < 0 || c.ThisProcess >= c.Processes {
		return errors.Errorf("config: this_process %d out of range [0,%d)", c.ThisProcess, c.Processes)
	}
	return nil
}

// Load decodes a ProcessConfig from r via jsoniter, the teacher's JSON
// library throughout (aistore's go.mod requires json-iterator/go; its
// config package decodes via jsoniter.ConfigCompatibleWithStandardLibrary
// rather than encoding/json).
func Load(r io.Reader) (ProcessConfig, error) {
	var c ProcessConfig
	dec := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return ProcessConfig{}, errors.Wrap(err, "config: decode process config")
	}
	if err := c.Validate(); err != nil {
		return ProcessConfig{}, err
	}
	return c, nil
}
