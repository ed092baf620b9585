/*
Package session hosts the active transfer protocol for one bench station.

A Session holds zero or one protocol together with the table it was built
from and the run descriptor naming its record log. It routes operator
commands to the protocol, mirrors the record log into the configured
writers after every mutation and reports lifecycle events through hooks.

Commands are serialized by a mutex so several front-ends (console, HTTP,
MCP) can drive the same station; this is not multi-user support.
*/
package session
