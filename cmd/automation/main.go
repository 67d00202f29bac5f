package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpRouter "github.com/jhoicas/stock-automation/internal/interfaces/http"
	"github.com/jhoicas/stock-automation/pkg/config"
	"github.com/jhoicas/stock-automation/pkg/jwt"
	"github.com/jhoicas/stock-automation/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	var rt *runtime
	withRuntime := func(c *cli.Context) error {
		r, err := newRuntime(c.Context, cfg, log)
		if err != nil {
			return err
		}
		rt = r
		return nil
	}
	closeRuntime := func(*cli.Context) error {
		if rt != nil {
			rt.Close()
		}
		return nil
	}

	app := &cli.App{
		Name:  cfg.App.Name,
		Usage: "Reconciliación de inventario y alertas automáticas",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Arranca el scheduler y, si está habilitado, el API de operación",
				Before: withRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error { return serve(rt) },
			},
			{
				Name:   "run-all",
				Usage:  "Ejecuta todas las tareas una vez",
				Before: withRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error {
					failed := 0
					for _, r := range rt.scheduler.RunAllTasks(c.Context) {
						if r.Err != nil {
							failed++
							fmt.Printf("%-24s ERROR %v (%s)\n", r.Name, r.Err, r.Duration)
							continue
						}
						fmt.Printf("%-24s OK (%s)\n", r.Name, r.Duration)
					}
					if failed > 0 {
						return cli.Exit(fmt.Sprintf("%d tareas fallidas", failed), 1)
					}
					return nil
				},
			},
			{
				Name:  "run-task",
				Usage: "Ejecuta una tarea por nombre",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Nombre de la tarea (ver list-tasks)", Required: true},
				},
				Before: withRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error {
					return rt.scheduler.RunTask(c.Context, c.String("name"))
				},
			},
			{
				Name:  "list-tasks",
				Usage: "Lista las tareas y sus cadencias",
				Action: func(c *cli.Context) error {
					for _, t := range cadences(cfg.Automation).Table() {
						fmt.Printf("%-24s cada %s\n", t.Name, t.Interval)
					}
					return nil
				},
			},
			{
				Name:  "resolve-alert",
				Usage: "Resuelve una alerta por ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "ID de la alerta", Required: true},
				},
				Before: withRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error {
					return rt.service.ResolveAlert(c.Context, c.String("id"))
				},
			},
			{
				Name:  "issue-token",
				Usage: "Emite un JWT de operador para el API de operación",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "operator", Usage: "ID del operador", Required: true},
					&cli.StringFlag{Name: "role", Usage: "Rol (admin | viewer)", Value: "admin"},
					&cli.DurationFlag{Name: "ttl", Usage: "Vigencia del token", Value: 24 * time.Hour},
				},
				Action: func(c *cli.Context) error {
					tok, err := jwt.Generate(cfg.JWT.Secret, c.String("operator"), c.String("role"), cfg.JWT.Issuer, c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Println(tok)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("comando fallido")
	}
}

func serve(rt *runtime) error {
	log := rt.log
	log.Info().
		Str("env", rt.cfg.App.Env).
		Str("app", rt.cfg.App.Name).
		Str("locker", rt.cfg.Automation.LockerBackend).
		Msg("iniciando motor de automatización")

	rt.scheduler.Start()
	defer rt.scheduler.Stop()

	var srvErr chan error
	app := httpRouter.NewApp(httpRouter.RouterDeps{
		AppName:   rt.cfg.App.Name,
		Tasks:     rt.scheduler,
		Alerts:    rt.service,
		JWTSecret: rt.cfg.JWT.Secret,
		Log:       log.Component("http"),
	})
	if rt.cfg.HTTP.Enabled {
		srvErr = make(chan error, 1)
		go func() {
			srvErr <- app.Listen(rt.cfg.HTTP.Addr())
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info().Msg("señal de apagado recibida, deteniendo scheduler...")
	case err := <-srvErr:
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}

	if rt.cfg.HTTP.Enabled {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
	}

	log.Info().Msg("motor detenido")
	return nil
}
