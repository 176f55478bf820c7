// Relay is a streaming proxy between browser clients and the Anthropic
// Messages API.
//
// It accepts a small JSON chat request, opens one streaming call upstream
// with the server-held credential, and relays the model's events back to the
// client as Server-Sent Events.
//
// Usage:
//
//	# Start with defaults (ANTHROPIC_API_KEY must be set)
//	relay run
//
//	# Start with a configuration file
//	relay run --config /etc/relay/relay.yaml
//
//	# Check a configuration without starting
//	relay validate --config relay.yaml
//
//	# Show version information
//	relay version
package main

func main() {
	Execute()
}
