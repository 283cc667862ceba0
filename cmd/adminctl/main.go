package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/pkg/database"
	applogger "campus-portal/backend/pkg/logger"
)

// adminctl 运维命令行工具
//
// 用法:
//
//	adminctl archive-absences            年终归档全部未归档缺勤
//	adminctl repair-duplicates [--dry-run]  修复同一 (用户, 节次) 的重复报名，保留最早一条
//	adminctl signup-stats --block <id>   输出指定节次的报名统计
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	repo := repository.NewRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var cmdErr error
	switch os.Args[1] {
	case "archive-absences":
		cmdErr = runArchiveAbsences(ctx, repo)
	case "repair-duplicates":
		cmdErr = runRepairDuplicates(ctx, repo, os.Args[2:])
	case "signup-stats":
		cmdErr = runSignupStats(ctx, repo, os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "未知子命令: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if cmdErr != nil {
		logger.Fatal("命令执行失败", zap.String("command", os.Args[1]), zap.Error(cmdErr))
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `adminctl - 课外活动系统运维工具

子命令:
  archive-absences    年终归档全部未归档缺勤
  repair-duplicates   修复同一 (用户, 节次) 的重复报名，保留最早一条
  signup-stats        输出指定节次的报名统计`)
}

// runArchiveAbsences 年终归档：全部未归档缺勤转入历史
func runArchiveAbsences(ctx context.Context, repo *repository.Repository) error {
	archived, err := repo.Signup.ArchiveAbsences(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("已归档缺勤记录: %d 条\n", archived)
	return nil
}

// runRepairDuplicates 数据库层兜底修复：同一 (用户, 节次) 出现多条报名时
// 保留最早创建的一条，删除其余
func runRepairDuplicates(ctx context.Context, repo *repository.Repository, args []string) error {
	flagSet := pflag.NewFlagSet("repair-duplicates", pflag.ContinueOnError)
	dryRun := flagSet.Bool("dry-run", false, "只报告不删除")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	dups, err := repo.Signup.ListDuplicates(ctx)
	if err != nil {
		return err
	}
	if len(dups) == 0 {
		fmt.Println("未发现重复报名")
		return nil
	}

	var removed int
	for _, d := range dups {
		signups, err := repo.Signup.ListByUserAndBlockAll(ctx, d.UserID, d.BlockID)
		if err != nil {
			return err
		}
		// ListByUserAndBlockAll 按 created_at 升序返回，第一条保留
		for _, sg := range signups[1:] {
			if *dryRun {
				fmt.Printf("[dry-run] 将删除报名 %s (用户 %s, 节次 %s)\n", sg.SignupID, d.UserID, d.BlockID)
				continue
			}
			if err := repo.Signup.Delete(ctx, sg.SignupID); err != nil {
				return err
			}
			removed++
		}
	}

	if *dryRun {
		fmt.Printf("发现 %d 组重复报名（dry-run，未删除）\n", len(dups))
	} else {
		fmt.Printf("发现 %d 组重复报名，已删除 %d 条多余记录\n", len(dups), removed)
	}
	return nil
}

// runSignupStats 输出指定节次内各排期的报名数与容量
func runSignupStats(ctx context.Context, repo *repository.Repository, args []string) error {
	flagSet := pflag.NewFlagSet("signup-stats", pflag.ContinueOnError)
	blockID := flagSet.String("block", "", "节次ID")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *blockID == "" {
		return fmt.Errorf("--block 不能为空")
	}

	block, err := repo.Block.GetByID(ctx, *blockID)
	if err != nil {
		return fmt.Errorf("查询节次失败: %w", err)
	}

	sas, err := repo.ScheduledActivity.ListByBlock(ctx, *blockID)
	if err != nil {
		return err
	}

	fmt.Printf("节次 %s %s 共 %d 个排期\n", block.Date.Format("2006-01-02"), block.BlockLetter, len(sas))
	for _, sa := range sas {
		count, err := repo.Signup.CountByScheduledActivity(ctx, sa.ScheduledActivityID)
		if err != nil {
			return err
		}

		name := sa.DisplayName()
		capacity := sa.TrueCapacity()
		if capacity == -1 {
			fmt.Printf("  %-36s %3d / 不限\n", name, count)
		} else {
			fmt.Printf("  %-36s %3d / %d\n", name, count, capacity)
		}
	}

	unsigned, err := repo.Signup.ListUnsignedUsers(ctx, *blockID)
	if err != nil {
		return err
	}
	fmt.Printf("未报名学生: %d 人\n", len(unsigned))
	return nil
}
