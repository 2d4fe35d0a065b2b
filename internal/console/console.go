package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	vending "vending_control"
	"vending_control/internal/logger"
	"vending_control/internal/machine"
)

// StatusReader exposes the current machine view for the menu printout.
type StatusReader interface {
	Status() vending.MachineSnapshot
}

// Console reads operator input line by line and turns it into local
// machine requests. It never touches the machine directly; everything
// goes through the controller's input channel.
type Console struct {
	log    *logger.Logger
	in     *bufio.Scanner
	out    io.Writer
	status StatusReader
}

func New(log *logger.Logger, in io.Reader, out io.Writer, status StatusReader) *Console {
	return &Console{
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
		status: status,
	}
}

// Run reads menu selections until exit (0) or EOF and sends the decoded
// requests on the returned channel. The channel is closed when the
// console stops, which the controller treats as "no more local input".
func (c *Console) Run(ctx context.Context) <-chan machine.LocalRequest {
	out := make(chan machine.LocalRequest)

	go func() {
		defer close(out)
		for {
			c.printMenu()
			line, ok := c.readLine()
			if !ok {
				return
			}

			req, exit, err := c.decode(line)
			if err != nil {
				fmt.Fprintf(c.out, "invalid input: %v\n", err)
				continue
			}
			if exit {
				select {
				case out <- machine.LocalRequest{Op: machine.LocalExit}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case out <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (c *Console) printMenu() {
	s := c.status.Status()
	fmt.Fprintf(c.out, "\nstate: %s", s.State)
	if s.UnderAdmin {
		fmt.Fprint(c.out, " (admin)")
	}
	fmt.Fprintln(c.out)
	for _, it := range s.Items {
		fmt.Fprintf(c.out, "  [%d] %s  price=%d  count=%d\n", it.ID, it.Name, it.Price, it.Count)
	}
	fmt.Fprintln(c.out, "1) add item  2) request item  3) insert money  4) dispense  5) cancel  0) exit")
	fmt.Fprint(c.out, "> ")
}

func (c *Console) decode(line string) (machine.LocalRequest, bool, error) {
	switch line {
	case "0":
		return machine.LocalRequest{}, true, nil

	case "1":
		id, err := c.promptUint("item id")
		if err != nil {
			return machine.LocalRequest{}, false, err
		}
		name, ok := c.prompt("name")
		if !ok {
			return machine.LocalRequest{}, false, io.ErrUnexpectedEOF
		}
		price, err := c.promptUint("price")
		if err != nil {
			return machine.LocalRequest{}, false, err
		}
		count, err := c.promptUint("count")
		if err != nil {
			return machine.LocalRequest{}, false, err
		}
		return machine.LocalRequest{
			Op:   machine.LocalAddItem,
			Item: vending.Item{ID: id, Name: name, Price: price, Count: count},
		}, false, nil

	case "2":
		id, err := c.promptUint("item id")
		if err != nil {
			return machine.LocalRequest{}, false, err
		}
		return machine.LocalRequest{Op: machine.LocalRequestItem, ItemID: id}, false, nil

	case "3":
		amount, err := c.promptUint("amount")
		if err != nil {
			return machine.LocalRequest{}, false, err
		}
		return machine.LocalRequest{Op: machine.LocalInsertMoney, Amount: amount}, false, nil

	case "4":
		return machine.LocalRequest{Op: machine.LocalDispense}, false, nil

	case "5":
		return machine.LocalRequest{Op: machine.LocalCancel}, false, nil
	}

	return machine.LocalRequest{}, false, fmt.Errorf("unknown selection %q", line)
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.readLine()
}

func (c *Console) promptUint(label string) (uint64, error) {
	line, ok := c.prompt(label)
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative number", label)
	}
	return v, nil
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			c.log.Warnw("console read failed", "err", err)
		}
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}
