package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/neexbeast/tourfront/internal/tour"
)

var errQuit = errors.New("quit")

// browser drives a tour.Session from line commands.
type browser struct {
	session *tour.Session
	out     io.Writer
	format  string
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(b.out, "type \"location all\" to start, \"quit\" to leave")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			break
		}
		err := b.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// exec runs one command line. Filter and sort changes re-render the current
// list without fetching again.
func (b *browser) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "location":
		if err := b.session.Load(ctx, tour.NewScope(arg)); err != nil {
			if errors.Is(err, tour.ErrStale) {
				return nil
			}
			return fmt.Errorf("%s: %w", fetchFailed, err)
		}
		return b.show()
	case "price", "language", "duration", "time":
		f := b.session.Filter()
		switch cmd {
		case "price":
			f.Price = arg
		case "language":
			f.Language = arg
		case "duration":
			f.Duration = arg
		case "time":
			f.Time = arg
		}
		b.session.SetFilter(f)
		return b.show()
	case "clear":
		b.session.SetFilter(tour.FilterState{})
		return b.show()
	case "sort":
		order, err := tour.ParseSortOrder(arg)
		if err != nil {
			return err
		}
		b.session.SetSort(order)
		return b.show()
	case "show":
		return b.show()
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (b *browser) show() error {
	v := b.session.View()
	if v.Err != nil {
		fmt.Fprintln(b.out, fetchFailed)
		return nil
	}
	fmt.Fprintf(b.out, "scope %s, sort %s, %d of %d tours\n", v.Scope, v.Sort, len(v.Tours), v.Total)
	return renderTours(b.out, b.format, v.Tours)
}
