// billingctl - утилита оператора для разовых проверок счетов.
//
//	billingctl anomalies --user <uuid> --period 2024-05
//	billingctl whatif --user <uuid> --period 2024-05
//	billingctl autofix --user <uuid> --period 2024-05 --prioritized
//	billingctl sweep
//	billingctl token --user <uuid>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"billing-analytics/internal/analytics"
	"billing-analytics/internal/app"
	"billing-analytics/internal/config"
	"billing-analytics/internal/service"
)

func main() {
	cliApp := &cli.App{
		Name:  "billingctl",
		Usage: "Анализ счетов абонентов из командной строки",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Уровень логирования (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			anomaliesCommand(),
			whatIfCommand(),
			autofixCommand(),
			sweepCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

var (
	userFlag = &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Идентификатор абонента",
		Required: true,
	}
	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Расчетный месяц YYYY-MM, по умолчанию текущий",
	}
)

func newLogger(c *cli.Context) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	return logger, nil
}

// withApp поднимает зависимости, выполняет действие и освобождает ресурсы
func withApp(c *cli.Context, run func(ctx context.Context, a *app.App) error) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(c.Context, a)
}

func userAndPeriod(c *cli.Context) (uuid.UUID, string, error) {
	userID, err := uuid.Parse(c.String("user"))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("неверный идентификатор абонента: %w", err)
	}
	period := c.String("period")
	if period == "" {
		period = analytics.PeriodOf(time.Now()).Token()
	}
	return userID, period, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func anomaliesCommand() *cli.Command {
	return &cli.Command{
		Name:  "anomalies",
		Usage: "Проверить счет абонента на аномалии",
		Flags: []cli.Flag{
			userFlag,
			periodFlag,
			&cli.BoolFlag{Name: "summary", Usage: "Сводка за три месяца вместо одного счета"},
		},
		Action: func(c *cli.Context) error {
			userID, period, err := userAndPeriod(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				if c.Bool("summary") {
					p, err := analytics.ResolvePeriod(period)
					if err != nil {
						return err
					}
					summary, err := a.Anomalies.Summary(ctx, userID, p.Start)
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, summary)
				}
				report, err := a.Anomalies.DetectForPeriod(ctx, userID, period)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, report)
			})
		},
	}
}

func whatIfCommand() *cli.Command {
	return &cli.Command{
		Name:  "whatif",
		Usage: "Сравнить типовые сценарии смены тарифа и услуг",
		Flags: []cli.Flag{userFlag, periodFlag},
		Action: func(c *cli.Context) error {
			userID, period, err := userAndPeriod(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				analysis, err := a.Simulation.WhatIf(ctx, userID, period)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, analysis)
			})
		},
	}
}

func autofixCommand() *cli.Command {
	return &cli.Command{
		Name:  "autofix",
		Usage: "Подобрать способы снизить счет",
		Flags: []cli.Flag{
			userFlag,
			periodFlag,
			&cli.BoolFlag{Name: "prioritized", Usage: "Упорядочить по приоритету"},
			&cli.BoolFlag{Name: "best", Usage: "Только лучший вариант с объяснением"},
		},
		Action: func(c *cli.Context) error {
			userID, period, err := userAndPeriod(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				var result interface{}
				switch {
				case c.Bool("best"):
					result, err = a.Simulation.BestAutofix(ctx, userID, period)
				case c.Bool("prioritized"):
					result, err = a.Simulation.PrioritizedAutofixes(ctx, userID, period)
				default:
					result, err = a.Simulation.Autofixes(ctx, userID, period)
				}
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, result)
			})
		},
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Проверить счета всех абонентов и разослать уведомления",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				report, err := a.Sweeper.Run(ctx)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, report)
			})
		},
	}
}

// tokenCommand выпускает токен без подключения к базе
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Выпустить JWT токен доступа к API для абонента",
		Flags: []cli.Flag{userFlag},
		Action: func(c *cli.Context) error {
			userID, err := uuid.Parse(c.String("user"))
			if err != nil {
				return fmt.Errorf("неверный идентификатор абонента: %w", err)
			}
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			token, err := service.NewAuthService(cfg.JWTSecret, cfg.TokenExpiry, logger).GenerateJWTToken(userID.String())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}
