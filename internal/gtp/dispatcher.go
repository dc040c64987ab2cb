// Package gtp implements a Go Text Protocol command dispatcher: reading
// one line at a time, matching the command name and its arguments against
// every overload registered for it, and framing the handler's result (or
// failure) per the protocol's response format.
package gtp

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Handler runs one matched overload, returning the text that follows "= "
// (or the error message that follows "? ") in the framed response.
type Handler func(args []Arg) (string, error)

type overload struct {
	sig     Signature
	handler Handler
}

// Dispatcher holds the live command table and whether the session is
// still accepting commands (false once quit has run).
type Dispatcher struct {
	log      *zap.SugaredLogger
	commands map[string][]overload
	builtin  map[string]bool
	active   bool
}

// NewDispatcher builds a Dispatcher pre-registering the protocol's
// mandatory introspection and session commands: protocol_version, name,
// version, known_command, list_commands, and quit. log may be nil, in
// which case a no-op logger is used.
func NewDispatcher(log *zap.SugaredLogger, engineName, engineVersion string) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := &Dispatcher{
		log:      log,
		commands: make(map[string][]overload),
		builtin:  make(map[string]bool),
		active:   true,
	}

	d.registerBuiltin("protocol_version", nil, func(args []Arg) (string, error) {
		return "2", nil
	})
	d.registerBuiltin("name", nil, func(args []Arg) (string, error) {
		return engineName, nil
	})
	d.registerBuiltin("version", nil, func(args []Arg) (string, error) {
		return engineVersion, nil
	})
	d.registerBuiltin("known_command", Signature{KindString}, func(args []Arg) (string, error) {
		if _, ok := d.commands[args[0].Text]; ok {
			return "true", nil
		}
		return "false", nil
	})
	d.registerBuiltin("list_commands", nil, func(args []Arg) (string, error) {
		names := make([]string, 0, len(d.commands))
		for name := range d.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), nil
	})
	d.registerBuiltin("quit", nil, func(args []Arg) (string, error) {
		d.active = false
		return "", nil
	})

	return d
}

// Register adds one overload for name. Registering a second overload with
// the same signature replaces the first; a different signature is added
// alongside it, enabling overload resolution by argument shape. Attempts
// to shadow a built-in command are rejected.
func (d *Dispatcher) Register(name string, sig Signature, h Handler) error {
	if d.builtin[name] {
		return newErr(CannotShadowBuiltin, name)
	}
	d.register(name, sig, h)
	return nil
}

func (d *Dispatcher) registerBuiltin(name string, sig Signature, h Handler) {
	d.builtin[name] = true
	d.register(name, sig, h)
}

func (d *Dispatcher) register(name string, sig Signature, h Handler) {
	list := d.commands[name]
	for i, o := range list {
		if sigEqual(o.sig, sig) {
			list[i] = overload{sig: sig, handler: h}
			d.commands[name] = list
			return
		}
	}
	d.commands[name] = append(list, overload{sig: sig, handler: h})
}

func sigEqual(a, b Signature) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Active reports whether the session should keep reading commands; it
// goes false once quit has been dispatched.
func (d *Dispatcher) Active() bool { return d.active }

// Dispatch parses and runs one input line, returning the fully framed
// response (including its trailing blank line) ready to write to the
// client verbatim.
func (d *Dispatcher) Dispatch(line string) string {
	id, name, tokens := parseLine(line)
	if name == "" {
		return ""
	}

	overloads, ok := d.commands[name]
	if !ok {
		d.log.Warnw("gtp: unknown command", "command", name)
		return frame(id, false, newErr(UnknownCommand, name).Error())
	}

	for _, o := range overloads {
		if args, ok := matchSignature(o.sig, tokens); ok {
			payload, err := o.handler(args)
			if err != nil {
				d.log.Warnw("gtp: command failed", "command", name, "error", err)
				return frame(id, false, err.Error())
			}
			d.log.Debugw("gtp: command ok", "command", name)
			return frame(id, true, payload)
		}
	}

	d.log.Warnw("gtp: no matching overload", "command", name, "args", tokens)
	return frame(id, false, newErr(InvalidArguments, name).Error())
}

func frame(id *int, ok bool, payload string) string {
	var sb strings.Builder
	if ok {
		sb.WriteString("= ")
	} else {
		sb.WriteString("? ")
	}
	if id != nil {
		sb.WriteString(strconv.Itoa(*id))
		sb.WriteByte(' ')
	}
	sb.WriteString(payload)
	sb.WriteString("\n\n")
	return sb.String()
}
