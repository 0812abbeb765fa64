package filemanager

// defaultBackend 默认使用BadgerDB持久化后端
const defaultBackend = BackendBadger
