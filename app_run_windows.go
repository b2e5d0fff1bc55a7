//go:build windows

package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"syscall"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

func runApp(app *App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- app.Run(ctx)
	}()

	resultCh := make(chan error, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	systray.Run(func() {
		setupTray(app, serverErrCh, sigCh, resultCh)
	}, func() {})

	err := <-resultCh
	cancel()
	return err
}

func setupTray(app *App, serverErrCh <-chan error, sigCh <-chan os.Signal, resultCh chan<- error) {
	baseURL := app.cfg.BaseURL()
	qrURL := baseURL + "/" + path.Base(app.cfg.QRFile)

	systray.SetTitle(appName)
	systray.SetTooltip(fmt.Sprintf("%s - %s", appName, baseURL))

	addrItem := systray.AddMenuItem(baseURL, "Form address")
	addrItem.Disable()
	systray.AddSeparator()
	openFormItem := systray.AddMenuItem("Open Form", "Open the form in the browser")
	openQRItem := systray.AddMenuItem("Open QR Code", "Open the QR code image in the browser")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Stop the form server")

	go func() {
		for {
			select {
			case <-openFormItem.ClickedCh:
				openBrowser(app.logger, baseURL)
			case <-openQRItem.ClickedCh:
				openBrowser(app.logger, qrURL)
			case <-quitItem.ClickedCh:
				resultCh <- nil
				systray.Quit()
				return
			case <-sigCh:
				resultCh <- nil
				systray.Quit()
				return
			case err := <-serverErrCh:
				resultCh <- err
				systray.Quit()
				return
			}
		}
	}()
}

func openBrowser(logger *zap.Logger, rawURL string) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		logger.Warn("invalid URL", zap.String("url", rawURL))
		return
	}
	if err := exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start(); err != nil {
		logger.Warn("open browser failed", zap.Error(err))
	}
}
