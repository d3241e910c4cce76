// Package runner drives one session from a line-oriented stream of commands.
//
// Input and output go through an IOHandler, so the same loop serves an interactive
// terminal (TextHandler) and a program talking JSON Lines (JSONHandler).
//
// Text mode accepts one command per line:
//
//	TODOS_ADD {"id": "a", "title": "milk"}   dispatch, payload optional
//	:state                                   print the state
//	:select title {"id": "a"}                run a selector
//	:reset                                   restore the initial state
//	:quit                                    stop
package runner
