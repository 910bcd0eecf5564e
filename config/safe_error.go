package config

// SafeErrorMessage 根据运行模式决定是否向客户端暴露错误详情
// release 模式返回 fallback，避免泄露内部信息；debug 模式返回原始错误便于排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
