// Package plugin dispatches session commands to handlers.
//
// Plugins declare a name and a matcher over the command text. The
// dispatcher tries registered plugins in registration order and falls
// back to the user's default plugin, then to help. It satisfies the
// session layer's Resolver capability.
package plugin
