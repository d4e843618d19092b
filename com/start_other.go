//go:build !windows

package com

import "github.com/xll-gen/dispatcher"

func (e *Engine) start(dispatcher.Settings) (dispatcher.Session, error) {
	return nil, ErrUnsupported
}
