// Package ui provides terminal UI components for the chihirosctl CLI.
//
// This package implements a structured, non-interactive output system for
// device commands, plus the interactive monitor TUI. The non-interactive
// components follow a predictable flow so command output stays scannable:
//
//   - Header: Command context box (title, command path, parameters)
//   - Progress: Step list for multi-frame operations
//   - Result: Success/failure box with details or troubleshooting tips
//   - FrameLog: Raw frame traffic box for verbose mode
//
// These components are orchestrated by the Runner, which manages the
// header, progress and result flow for a device operation.
//
// # Usage
//
// Commands use this package by:
//
//  1. Creating a Runner with command metadata
//  2. Passing the operation as a closure
//  3. Reporting progress through the StepCallback
//  4. Runner handles all UI rendering automatically
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:      "Dosing Schedule",
//	    Command:    "chihirosctl add-dosing-schedule",
//	    Params:     map[string]string{"Device": addr, "Channel": "1"},
//	    TotalSteps: 3,
//	})
//	err := runner.Run(ctx, func(onStep ui.StepCallback) error {
//	    ...
//	})
//
// # Monitor TUI
//
// The Monitor model is a full Bubble Tea program that renders the live
// notification stream from a device: a scrollable viewport of decoded
// frames with a spinner while waiting for traffic.
//
// # Logging
//
// This package expects logging to be controlled via the CHIHIROSCTL_LOG_LEVEL
// environment variable. By default logging is silent, which allows
// the curated UI output to be displayed cleanly. Set CHIHIROSCTL_LOG_LEVEL to
// "debug" to interleave structured logs with UI output.
package ui
