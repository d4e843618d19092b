package com_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xll-gen/dispatcher"
	"github.com/xll-gen/dispatcher/com"
)

func TestNew_Defaults(t *testing.T) {
	if got := com.New().ProgID(); got != "Excel.Application" {
		t.Errorf("ProgID = %q", got)
	}
	if got := com.New(com.WithProgID("Ket.Application")).ProgID(); got != "Ket.Application" {
		t.Errorf("ProgID = %q", got)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := dispatcher.DefaultConfig()
	if got := com.FromConfig(cfg.Engine).ProgID(); got != dispatcher.DefaultProgID {
		t.Errorf("ProgID = %q", got)
	}
	cfg.Engine.ProgID = "Et.Application"
	if got := com.FromConfig(cfg.Engine).ProgID(); got != "Et.Application" {
		t.Errorf("ProgID = %q", got)
	}
}

func TestStart_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dispatcher.New(ctx, com.New())
	if !errors.Is(err, dispatcher.ErrEngineStart) || !errors.Is(err, context.Canceled) {
		t.Errorf("New error = %v", err)
	}
}
