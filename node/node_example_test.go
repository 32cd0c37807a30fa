package node_test

import (
	"fmt"
	"log"

	"github.com/tos-network/ratingd/node"
)

// SampleLifecycle is a trivial service that can be attached to a node for
// life cycle management.
//
// The following methods are needed to implement a node.Lifecycle:
//   - Start() error              - method invoked when the node is ready to start the service
//   - Stop() error               - method invoked when the node terminates the service
type SampleLifecycle struct{}

func (s *SampleLifecycle) Start() error { fmt.Println("Service starting..."); return nil }
func (s *SampleLifecycle) Stop() error  { fmt.Println("Service stopping..."); return nil }

func ExampleLifecycle() {
	// Create an in-memory node without an HTTP endpoint.
	stack, err := node.New(&node.Config{})
	if err != nil {
		log.Fatalf("Failed to create node: %v", err)
	}

	// Create and register a simple Lifecycle.
	service := new(SampleLifecycle)
	stack.RegisterLifecycle(service)

	// Boot up the node and terminate it again.
	if err := stack.Start(); err != nil {
		log.Fatalf("Failed to start the node: %v", err)
	}
	if err := stack.Close(); err != nil {
		log.Fatalf("Failed to stop the node: %v", err)
	}
	// Output:
	// Service starting...
	// Service stopping...
}
