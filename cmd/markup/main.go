package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"cocomarkup/internal/app"
)

func main() {
	source, destination, err := paths(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to read paths: %v", err)
	}

	application := app.NewApp()
	_, err = application.Run(source, destination)
	application.Close()
	if err != nil {
		log.Fatalf("Markup failed: %v", err)
	}
}

// paths takes source and destination from the arguments or asks for them.
func paths(args []string) (string, string, error) {
	if len(args) >= 2 {
		return args[0], args[1], nil
	}

	reader := bufio.NewReader(os.Stdin)
	source, err := prompt(reader, "Enter the input directory path: ")
	if err != nil {
		return "", "", err
	}
	destination, err := prompt(reader, "Enter the output directory path: ")
	if err != nil {
		return "", "", err
	}
	return source, destination, nil
}

func prompt(reader *bufio.Reader, question string) (string, error) {
	fmt.Print(question)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty path")
	}
	return line, nil
}
