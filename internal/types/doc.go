/*
Package types defines the data structures shared by every dfspanel component.

# Overview

The types package provides shared type definitions for:
  - The database connection descriptor sent to the generation service
  - Catalog entries (tables and their comments)
  - Generation modes and generated artifacts
  - Cache keys identifying one (table, mode) generation result
  - The error taxonomy surfaced to the user

# Connection

ConnectionConfig:
  - host, port, user, password, database name, charset
  - Exactly one is active per session
  - Replaced wholesale, never patched

# Generation

GenerationMode:
  - sqlmodel (default)
  - tortoise

GeneratedArtifact:
  - One generated file for a table under a mode
  - A table may yield several (model, schema, router...)

# Errors

ValidationError:
  - Missing connection fields, resolved client side

ErrNotConfigured:
  - An operation needed an active connection

RemoteError:
  - The service answered with the 40000 sentinel, or the request failed in transit
*/
package types
