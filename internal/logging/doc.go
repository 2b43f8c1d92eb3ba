// Package logging builds the zerolog loggers used across dakko.
//
// Loggers are configured from a Config (level, format, output, file) and
// carried through context.Context so that packages deep in a command can log
// with the command's settings. File output is rotated with lumberjack.
package logging
