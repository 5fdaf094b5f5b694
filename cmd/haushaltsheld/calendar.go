package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/icsexport"
	"github.com/belphemur/haushaltsheld/internal/session"
	"github.com/belphemur/haushaltsheld/internal/termview"
)

func newCalendarCmd(a *app) *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a group's calendar to the terminal",
	}
	cmd.PersistentFlags().StringVarP(&groupID, "group", "g", "", "Group ID")
	_ = cmd.MarkPersistentFlagRequired("group")

	var year, month int
	monthCmd := &cobra.Command{
		Use:   "month",
		Short: "Print the month grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.loadSession(cmd, groupID)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := s.MonthView()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("year") || cmd.Flags().Changed("month") {
				if !cmd.Flags().Changed("year") {
					year = view.Year
				}
				if !cmd.Flags().Changed("month") {
					month = int(view.Month)
				}
				if view, err = s.SetDisplayedMonth(year, time.Month(month)); err != nil {
					return err
				}
			}
			return termview.RenderMonth(cmd.OutOrStdout(), view)
		},
	}
	monthCmd.Flags().IntVarP(&year, "year", "y", 0, "Year to show (default: current)")
	monthCmd.Flags().IntVarP(&month, "month", "m", 0, "Month to show, 1-12 (default: current)")

	var weekDate string
	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Print the week strip",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.loadSession(cmd, groupID)
			if err != nil {
				return err
			}
			defer closeFn()

			view := s.WeekView()
			if weekDate != "" {
				day, err := calendar.ParseDateKey(weekDate, a.cfg.Location())
				if err != nil {
					return err
				}
				view = s.SetDisplayedWeek(day)
			}
			return termview.RenderWeek(cmd.OutOrStdout(), view)
		},
	}
	weekCmd.Flags().StringVarP(&weekDate, "date", "d", "", "Any day of the week to show, YYYY-MM-DD (default: today)")

	var dayDate string
	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "List the tasks due on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.loadSession(cmd, groupID)
			if err != nil {
				return err
			}
			defer closeFn()

			key := calendar.KeyIn(time.Now(), a.cfg.Location())
			if dayDate != "" {
				day, err := calendar.ParseDateKey(dayDate, a.cfg.Location())
				if err != nil {
					return err
				}
				key = calendar.KeyOf(day)
			}
			return termview.RenderDay(cmd.OutOrStdout(), key, s.TasksOn(key), s.Colors())
		},
	}
	dayCmd.Flags().StringVarP(&dayDate, "date", "d", "", "Day to list, YYYY-MM-DD (default: today)")

	var exportPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the group's tasks as an iCalendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, service, err := a.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			group, err := service.GetGroup(cmd.Context(), groupID)
			if err != nil {
				return fmt.Errorf("group %s: %w", groupID, err)
			}
			tasks, err := service.ListGroupTasks(cmd.Context(), group.ID)
			if err != nil {
				return err
			}

			if exportPath == "" {
				return icsexport.Write(cmd.OutOrStdout(), group, tasks, a.cfg.Location(), time.Now())
			}
			f, err := os.Create(exportPath)
			if err != nil {
				return err
			}
			if err := icsexport.Write(f, group, tasks, a.cfg.Location(), time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "File to write (default: stdout)")

	cmd.AddCommand(monthCmd, weekCmd, dayCmd, exportCmd)
	return cmd
}

// loadSession opens the store and loads the group's tasks into a fresh session
func (a *app) loadSession(cmd *cobra.Command, groupID string) (*session.Session, func(), error) {
	db, service, err := a.openService()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = db.Close() }

	if _, err := service.GetGroup(cmd.Context(), groupID); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	s := session.New(groupID, service, a.cfg.Palette(), a.cfg.CalendarOptions(), time.Now)
	if err := s.Refresh(cmd.Context()); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}
