package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"library-catalog/library"
)

const ruler = "-----------------------------"

// menu is the interactive front end: one numbered choice per iteration,
// prompts for the fields, one result line.
type menu struct {
	sc      *bufio.Scanner
	out     io.Writer
	catalog *library.Catalog
	logger  *slog.Logger

	timestamps bool
	// echo repeats each value read after its prompt, for piped input.
	echo bool
}

func (m *menu) printMenu() {
	fmt.Fprintln(m.out, "===== Library Management System =====")
	fmt.Fprintln(m.out, "1. Add Book")
	fmt.Fprintln(m.out, "2. Add Member")
	fmt.Fprintln(m.out, "3. Issue Book")
	fmt.Fprintln(m.out, "4. Return Book")
	fmt.Fprintln(m.out, "5. Display Transactions")
	fmt.Fprintln(m.out, "6. Exit")
	fmt.Fprintln(m.out, "=====================================")
	fmt.Fprint(m.out, "Enter your choice: ")
}

// loop runs until Exit or end of input.
func (m *menu) loop() {
	for {
		m.printMenu()
		choice, ok := m.read()
		if !ok {
			fmt.Fprintln(m.out)
			return
		}

		switch choice {
		case "1":
			m.handleAddBook()
		case "2":
			m.handleAddMember()
		case "3":
			m.handleIssue()
		case "4":
			m.handleReturn()
		case "5":
			m.handleDisplayTransactions()
		case "6":
			return
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}
	}
}

// read returns the next trimmed input line; false at end of input.
func (m *menu) read() (string, bool) {
	if !m.sc.Scan() {
		return "", false
	}
	line := strings.TrimSpace(m.sc.Text())
	if m.echo {
		fmt.Fprintln(m.out, line)
	}
	return line, true
}

func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	return m.read()
}

func (m *menu) promptInt(label string) (int64, bool) {
	s, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid input: %s\n", s)
		return 0, false
	}
	return n, true
}

func (m *menu) handleAddBook() {
	isbn, ok := m.prompt("Enter ISBN: ")
	if !ok {
		return
	}
	title, ok := m.prompt("Enter Title: ")
	if !ok {
		return
	}
	author, ok := m.prompt("Enter Author: ")
	if !ok {
		return
	}
	genre, ok := m.prompt("Enter Genre: ")
	if !ok {
		return
	}
	quantity, ok := m.promptInt("Enter Quantity: ")
	if !ok {
		return
	}

	if err := m.catalog.AddBook(library.NewBook(isbn, title, author, genre, int(quantity))); err != nil {
		m.logger.Error("add book failed", "isbn", isbn, "error", err)
		fmt.Fprintf(m.out, "Error adding book: %v\n", err)
		return
	}
	fmt.Fprintln(m.out, "Book added successfully.")
}

func (m *menu) handleAddMember() {
	id, ok := m.promptInt("Enter Member ID: ")
	if !ok {
		return
	}
	name, ok := m.prompt("Enter Name: ")
	if !ok {
		return
	}
	contact, ok := m.prompt("Enter Contact: ")
	if !ok {
		return
	}

	if err := m.catalog.AddMember(&library.Member{ID: id, Name: name, Contact: contact}); err != nil {
		m.logger.Error("add member failed", "member_id", id, "error", err)
		fmt.Fprintf(m.out, "Error adding member: %v\n", err)
		return
	}
	fmt.Fprintln(m.out, "Member added successfully.")
}

// promptCirculation collects the ISBN and member ID shared by issue and return.
func (m *menu) promptCirculation() (string, int64, bool) {
	isbn, ok := m.prompt("Enter ISBN: ")
	if !ok {
		return "", 0, false
	}
	memberID, ok := m.promptInt("Enter Member ID: ")
	if !ok {
		return "", 0, false
	}
	return isbn, memberID, true
}

func (m *menu) handleIssue() {
	isbn, memberID, ok := m.promptCirculation()
	if !ok {
		return
	}
	if _, err := m.catalog.IssueBook(isbn, memberID); err != nil {
		fmt.Fprintln(m.out, "Failed to issue book.")
		return
	}
	fmt.Fprintln(m.out, "Book issued successfully.")
}

func (m *menu) handleReturn() {
	isbn, memberID, ok := m.promptCirculation()
	if !ok {
		return
	}
	if _, err := m.catalog.ReturnBook(isbn, memberID); err != nil {
		fmt.Fprintln(m.out, "Failed to return book.")
		return
	}
	fmt.Fprintln(m.out, "Book returned successfully.")
}

func (m *menu) handleDisplayTransactions() {
	log, err := m.catalog.Transactions()
	if err != nil {
		m.logger.Error("listing transactions failed", "error", err)
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(m.out, "---- Transaction History ----")
	for _, t := range log {
		fmt.Fprintf(m.out, "Book ID: %s\n", t.ISBN)
		fmt.Fprintf(m.out, "Member ID: %d\n", t.MemberID)
		if m.timestamps {
			fmt.Fprintf(m.out, "Date: %s\n", t.Timestamp.Format(time.ANSIC))
		}
		fmt.Fprintf(m.out, "Type: %s\n", t.Kind())
		fmt.Fprintln(m.out, ruler)
	}
}
