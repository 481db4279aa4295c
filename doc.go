// Package stagehand contains the core components of Stagehand, an adapter for
// implementing strongly-typed computation stages which participate in a
// declarative pipeline orchestrator. The orchestrator and a stage communicate
// exclusively through metadata records exchanged at orchestrator-supplied file
// paths, plus a small command-line contract. This root package defines types
// which are employed when declaring stage schemas and implementing stage
// logic, and is an excellent overview of Stagehand's key concepts.
package stagehand
